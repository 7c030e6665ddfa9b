package types

// Handle identifies an open file. Handles are indices into a file system's
// descriptor table and are only meaningful for the mount that issued them.
type Handle int

type FileInfo struct {
	Name string `json:"name"`
	Ino  Ino    `json:"ino"`
	Size Byte   `json:"size"`
}

type Stats struct {
	BlockSize       Byte  `json:"blockSize"`
	TotalBlocks     Block `json:"totalBlocks"`
	DataBlocks      Block `json:"dataBlocks"`
	FreeDataBlocks  Block `json:"freeDataBlocks"`
	UsedDataBlocks  Block `json:"usedDataBlocks"`
	Files           int   `json:"files"`
	MaxFiles        int   `json:"maxFiles"`
	MaxFileSize     Byte  `json:"maxFileSize"`
	MaxNameLen      Byte  `json:"maxNameLen"`
	OpenDescriptors int   `json:"openDescriptors"`
}
