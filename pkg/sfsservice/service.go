package sfsservice

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	pz "github.com/weberc2/httpeasy"
	"github.com/weberc2/sfs/pkg/sfs"
	. "github.com/weberc2/sfs/pkg/types"
)

// Service exposes a mounted file system over HTTP. Every request holds the
// mutex for its whole duration.
type Service struct {
	mutex      sync.Mutex
	FileSystem *sfs.FileSystem
}

func New(fs *sfs.FileSystem) *Service {
	return &Service{FileSystem: fs}
}

type logging struct {
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Size      Byte   `json:"size,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
	Error     string `json:"error,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// StatusFor maps a file system error onto the HTTP status reported for it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyOpen), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrNameTooLong), errors.Is(err, ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, ErrDirectoryFull),
		errors.Is(err, ErrExhausted),
		errors.Is(err, ErrFileTooLarge):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func handleError(message, file string, err error) pz.Response {
	status := StatusFor(err)
	body := errorBody{Message: http.StatusText(status), Status: status}
	if status != http.StatusInternalServerError {
		body.Message = err.Error()
	}
	return pz.Response{
		Status: status,
		Data:   pz.JSON(&body),
	}.WithLogging(&logging{
		Message:   message,
		File:      file,
		ErrorType: fmt.Sprintf("%T", err),
		Error:     err.Error(),
	})
}

func (s *Service) Files(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return pz.Ok(pz.JSON(s.FileSystem.Files()))
}

func (s *Service) GetFile(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := r.Vars["name"]
	data, err := s.FileSystem.ReadFile(name)
	if err != nil {
		return handleError("reading file", name, err)
	}
	return pz.Ok(
		pz.String(string(data)),
		&logging{Message: "read file", File: name, Size: Byte(len(data))},
	)
}

// readBody reads at most one byte more than the largest file so that an
// oversized body is reported as `ErrFileTooLarge` instead of truncated.
func (s *Service) readBody(r pz.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	geometry := s.FileSystem.Geometry()
	limit := geometry.MaxFileSize()
	data, err := io.ReadAll(io.LimitReader(r.Body, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if Byte(len(data)) > limit {
		return nil, fmt.Errorf(
			"request body exceeds `%d` bytes: %w",
			limit,
			ErrFileTooLarge,
		)
	}
	return data, nil
}

func (s *Service) PutFile(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := r.Vars["name"]
	data, err := s.readBody(r)
	if err != nil {
		return handleError("replacing file", name, err)
	}
	if err := s.FileSystem.Remove(name); err != nil &&
		!errors.Is(err, ErrNotFound) {
		return handleError("replacing file", name, err)
	}
	if err := s.FileSystem.WriteFile(name, data); err != nil {
		return handleError("replacing file", name, err)
	}
	return pz.Created(
		pz.JSON(&FileInfo{Name: name, Size: Byte(len(data))}),
		&logging{Message: "wrote file", File: name, Size: Byte(len(data))},
	)
}

func (s *Service) AppendFile(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := r.Vars["name"]
	data, err := s.readBody(r)
	if err != nil {
		return handleError("appending to file", name, err)
	}
	if err := s.FileSystem.AppendFile(name, data); err != nil {
		return handleError("appending to file", name, err)
	}
	size, err := s.FileSystem.FileSize(name)
	if err != nil {
		return handleError("appending to file", name, err)
	}
	return pz.Ok(
		pz.JSON(&FileInfo{Name: name, Size: size}),
		&logging{Message: "appended to file", File: name, Size: Byte(len(data))},
	)
}

func (s *Service) DeleteFile(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := r.Vars["name"]
	if err := s.FileSystem.Remove(name); err != nil {
		return handleError("removing file", name, err)
	}
	return pz.Ok(
		pz.JSON(&struct {
			Message string `json:"message"`
			File    string `json:"file"`
		}{Message: "removed file", File: name}),
		&logging{Message: "removed file", File: name},
	)
}

func (s *Service) Stat(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return pz.Ok(pz.JSON(s.FileSystem.Stat()))
}

type CheckResult struct {
	OK     bool   `json:"ok"`
	Errors string `json:"errors,omitempty"`
}

// Check runs a consistency check. An inconsistent volume is still reported
// with status 200; the result body carries the problems.
func (s *Service) Check(r pz.Request) pz.Response {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.FileSystem.Check(); err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return handleError("checking volume", "", err)
		}
		return pz.Ok(
			pz.JSON(&CheckResult{OK: false, Errors: err.Error()}),
			&logging{Message: "volume is inconsistent", Error: err.Error()},
		)
	}
	return pz.Ok(pz.JSON(&CheckResult{OK: true}))
}

func (s *Service) Routes() []pz.Route {
	return []pz.Route{{
		Path:    "/files",
		Method:  "GET",
		Handler: s.Files,
	}, {
		Path:    "/files/{name}",
		Method:  "GET",
		Handler: s.GetFile,
	}, {
		Path:    "/files/{name}",
		Method:  "PUT",
		Handler: s.PutFile,
	}, {
		Path:    "/files/{name}",
		Method:  "POST",
		Handler: s.AppendFile,
	}, {
		Path:    "/files/{name}",
		Method:  "DELETE",
		Handler: s.DeleteFile,
	}, {
		Path:    "/stat",
		Method:  "GET",
		Handler: s.Stat,
	}, {
		Path:    "/check",
		Method:  "GET",
		Handler: s.Check,
	}}
}
