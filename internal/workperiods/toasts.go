package workperiods

import (
	"fmt"

	"github.com/bookingdesk/payperiod/internal/api"
)

// ToastKind classifies a toast for presentation.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Toast is a transient user-facing notification. Warning toasts for partial
// payment runs carry the failed items so the UI can offer per-item detail.
type Toast struct {
	Kind    ToastKind
	Message string
	Failed  []api.PaymentResult
}

func toastMessage(kind ToastKind, msg string) Toast {
	return Toast{Kind: kind, Message: msg}
}

func toastPaymentsProcessing(count int) Toast {
	return toastMessage(ToastInfo, fmt.Sprintf("Processing payments for %d work periods...", count))
}

func toastPaymentsSuccess(count int) Toast {
	return toastMessage(ToastSuccess, fmt.Sprintf("Payments are successfully scheduled for %d work periods.", count))
}

func toastPaymentsWarning(succeeded, failed int, failedResults []api.PaymentResult) Toast {
	t := toastMessage(ToastWarning, fmt.Sprintf(
		"Payments are scheduled for %d work periods; %d failed.", succeeded, failed))
	t.Failed = failedResults
	return t
}

func toastPaymentsError(failed int) Toast {
	if failed == 0 {
		return toastMessage(ToastError, "Failed to schedule payments; no work periods were processed.")
	}
	return toastMessage(ToastError, fmt.Sprintf("Failed to schedule payments for %d work periods.", failed))
}

// toastPaymentsRunError reports a run that never produced an outcome; the
// transport error is surfaced verbatim.
func toastPaymentsRunError(err error) Toast {
	return toastMessage(ToastError, fmt.Sprintf("Failed to schedule payments: %v", err))
}

// Event is a notification the Store pushes to its sink. The UI treats Updated
// as a cue to take a fresh snapshot and ToastEvent as a message to surface.
type Event interface{ isEvent() }

// Updated signals that the state changed.
type Updated struct{}

func (Updated) isEvent() {}

// ToastEvent carries a notification for the user.
type ToastEvent struct {
	Toast Toast
}

func (ToastEvent) isEvent() {}
