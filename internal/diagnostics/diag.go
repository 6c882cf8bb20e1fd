package diagnostics

import (
	"errors"

	"github.com/coreman2200/funtimes-spiled/internal/panel"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromError classifies a panel or parse error.
func FromError(err error) Diagnostic {
	var bte *panel.BusTransferError
	switch {
	case errors.Is(err, rgb.ErrInvalidColorFormat):
		return Diagnostic{
			Severity:       Warn,
			Code:           "COLOR.INVALID",
			Summary:        "Malformed color; frame not sent",
			Detail:         err.Error(),
			SuggestedFixes: []string{"send colors as 6 hex digits RRGGBB without '#'"},
		}
	case errors.As(err, &bte):
		return Diagnostic{
			Severity:     Err,
			Code:         "BUS.TRANSFER",
			Summary:      "SPI transfer failed",
			Detail:       bte.Err.Error(),
			LikelyCauses: []string{"spidev bufsiz smaller than the frame", "SPI port closed or removed"},
			Evidence:     map[string]any{"bytes": bte.Bytes},
		}
	default:
		return Diagnostic{Severity: Err, Code: "INTERNAL", Summary: "Request failed", Detail: err.Error()}
	}
}
