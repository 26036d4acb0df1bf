package drainx

import "github.com/Abraxas-365/fetchdrain/pkg/errx"

var drainErrors = errx.NewRegistry("DRAIN")

var (
	ErrBatchFailed    = drainErrors.Register("BATCH_FAILED", errx.TypeWork, "One or more work items failed")
	ErrCallbackFailed = drainErrors.Register("CALLBACK_FAILED", errx.TypeInternal, "Completion callback failed")
	ErrCanceled       = drainErrors.Register("CANCELED", errx.TypeCanceled, "Drain canceled before every item was launched")
	ErrItemFailed     = drainErrors.Register("ITEM_FAILED", errx.TypeWork, "Work item failed")
)
