package fetch

import "github.com/Abraxas-365/fetchdrain/pkg/errx"

var fetchErrors = errx.NewRegistry("FETCH")

var (
	ErrFetchFailed = fetchErrors.Register("FETCH_FAILED", errx.TypeWork, "Failed to fetch work item")
	ErrSimulated   = fetchErrors.Register("SIMULATED", errx.TypeWork, "Simulated work item failure")
)
