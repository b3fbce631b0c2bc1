// Package mcp implements the Model Context Protocol (MCP) server for layer.
// It lets AI clients ask which context files are layered, exposed or stale
// and why a path is ignored.
package mcp

import (
	"context"
	"errors"
	"fmt"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

// Custom MCP error codes for layer.
const (
	// ErrCodeNotARepository indicates the server root is not a git work tree.
	ErrCodeNotARepository = -32001

	// ErrCodeOutsideRepo indicates a path argument leaves the repository.
	ErrCodeOutsideRepo = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeFileNotFound indicates an ignore file or backup is missing.
	ErrCodeFileNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var layerErr *lerrors.LayerError
	if errors.As(err, &layerErr) {
		return mapLayerError(layerErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapLayerError(le *lerrors.LayerError) *MCPError {
	message := le.Message
	if le.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", le.Message, le.Suggestion)
	}

	switch le.Category {
	case lerrors.CategoryRepository:
		return &MCPError{Code: ErrCodeNotARepository, Message: message}
	case lerrors.CategoryIO:
		if le.Code == lerrors.ErrCodeFileNotFound || le.Code == lerrors.ErrCodeBackupNotFound {
			return &MCPError{Code: ErrCodeFileNotFound, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	case lerrors.CategoryValidation:
		if le.Code == lerrors.ErrCodeOutsideRepo {
			return &MCPError{Code: ErrCodeOutsideRepo, Message: message}
		}
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default: // CategoryConfig, CategoryInternal and unknown
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
