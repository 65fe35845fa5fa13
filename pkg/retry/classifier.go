package retry

import (
	"strings"

	"github.com/zen-systems/listingsmith/pkg/adapter"
)

// Class is the retry category of a generation failure.
type Class int

const (
	// Fatal failures are surfaced immediately.
	Fatal Class = iota
	// Transient failures are retried while attempts remain.
	Transient
	// TerminalQuota failures mean the provider's daily quota is spent.
	TerminalQuota
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case TerminalQuota:
		return "terminal_quota"
	default:
		return "fatal"
	}
}

// Signal is the normalized view of a provider failure.
type Signal struct {
	Code    int
	Message string
}

// Classification is the result of classifying a Signal.
type Classification struct {
	Class       Class
	RateLimited bool
}

// Classifier maps a failure signal to a retry classification.
type Classifier func(Signal) Classification

// SignalFromError extracts the status code and message from err.
func SignalFromError(err error) Signal {
	if err == nil {
		return Signal{}
	}
	return Signal{Code: adapter.StatusCode(err), Message: err.Error()}
}

var transientMarkers = []string{"503", "service unavailable", "overloaded", "429", "rate limit"}

// ClassifyText classifies failures by matching provider message text.
// A quota marker always wins. A 429 without quota wording is treated as
// transient; providers that phrase daily limits differently may be
// misclassified.
func ClassifyText(sig Signal) Classification {
	msg := strings.ToLower(sig.Message)

	if strings.Contains(msg, "quota") {
		return Classification{Class: TerminalQuota}
	}

	rateLimited := sig.Code == 429 ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit")

	if rateLimited || sig.Code == 503 {
		return Classification{Class: Transient, RateLimited: rateLimited}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return Classification{Class: Transient}
		}
	}
	return Classification{Class: Fatal}
}
