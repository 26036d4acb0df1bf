package report

import "github.com/Abraxas-365/fetchdrain/pkg/errx"

var reportErrors = errx.NewRegistry("REPORT")

var (
	ErrAppend    = reportErrors.Register("APPEND", errx.TypeExternal, "Redis append failed")
	ErrHistory   = reportErrors.Register("HISTORY", errx.TypeExternal, "Redis history read failed")
	ErrMarshal   = reportErrors.Register("MARSHAL", errx.TypeInternal, "Failed to marshal completion record")
	ErrUnmarshal = reportErrors.Register("UNMARSHAL", errx.TypeInternal, "Failed to unmarshal completion record")
)
