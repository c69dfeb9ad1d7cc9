package controller

import "github.com/tracefirst/digilink/internal/product"

// ViewMode is the current top-level view.
type ViewMode string

const (
	ModeScan     ViewMode = "SCAN"
	ModeProduct  ViewMode = "PRODUCT"
	ModeSettings ViewMode = "SETTINGS"
)

// ViewSession is a snapshot of the workflow state. Product is non-nil
// exactly when Mode is ModeProduct; Resolving is true strictly between the
// start and end of one resolution.
type ViewSession struct {
	Mode      ViewMode             `json:"mode"`
	GTINInput string               `json:"gtin_input"`
	Product   *product.ProductData `json:"product,omitempty"`
	Err       string               `json:"error,omitempty"`
	Resolving bool                 `json:"resolving"`
}

// event is a state-machine input. Events are produced only by Controller
// operations; apply is the single place session state changes.
type event interface{ isEvent() }

type inputChanged struct{ gtin string }

type resolveStarted struct{}

type resolveSucceeded struct{ product *product.ProductData }

type resolveFailed struct{ message string }

type settingsOpened struct{}

type settingsClosed struct{}

type wentBack struct{}

func (inputChanged) isEvent()     {}
func (resolveStarted) isEvent()   {}
func (resolveSucceeded) isEvent() {}
func (resolveFailed) isEvent()    {}
func (settingsOpened) isEvent()   {}
func (settingsClosed) isEvent()   {}
func (wentBack) isEvent()         {}

// apply is the pure state-transition function. It performs no IO and never
// mutates its input.
func apply(s ViewSession, ev event) ViewSession {
	switch ev := ev.(type) {
	case inputChanged:
		s.GTINInput = ev.gtin
	case resolveStarted:
		s.Resolving = true
		s.Err = ""
	case resolveSucceeded:
		s.Resolving = false
		s.Mode = ModeProduct
		s.Product = ev.product
		s.Err = ""
	case resolveFailed:
		s.Resolving = false
		s.Mode = ModeScan
		s.Product = nil
		s.Err = ev.message
	case settingsOpened:
		// Settings are entered from the scan view only; from any other mode
		// the event is a no-op so Product stays tied to ModeProduct.
		if s.Mode == ModeScan {
			s.Mode = ModeSettings
		}
	case settingsClosed:
		if s.Mode == ModeSettings {
			s.Mode = ModeScan
		}
	case wentBack:
		s.Mode = ModeScan
		s.Product = nil
		s.GTINInput = ""
		s.Err = ""
	}
	return s
}
