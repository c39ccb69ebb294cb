// Package model defines the core data structures for toastui.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type is the semantic kind of a toast.
type Type string

const (
	TypeDefault Type = "default"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Types returns all valid toast types.
func Types() []Type {
	return []Type{TypeDefault, TypeSuccess, TypeError, TypeWarning, TypeInfo}
}

// Valid reports whether t is a known toast type.
func (t Type) Valid() bool { return contains(Types(), t) }

// Position is a screen anchor toasts dock at.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// Positions returns the six anchors in canonical order (top row, then bottom row).
func Positions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopCenter,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomCenter,
		PositionBottomRight,
	}
}

// Valid reports whether p is one of the six anchors.
func (p Position) Valid() bool { return contains(Positions(), p) }

// IsBottom returns true if the anchor is on the bottom edge of the screen.
func (p Position) IsBottom() bool {
	switch p {
	case PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return true
	default:
		return false
	}
}

// Animation is the entry animation style of a toast.
type Animation string

const (
	AnimationSlide  Animation = "slide"
	AnimationFade   Animation = "fade"
	AnimationZoom   Animation = "zoom"
	AnimationBounce Animation = "bounce"
)

// Animations returns all valid animation styles.
func Animations() []Animation {
	return []Animation{AnimationSlide, AnimationFade, AnimationZoom, AnimationBounce}
}

// Valid reports whether a is a known animation style.
func (a Animation) Valid() bool { return contains(Animations(), a) }

// Theme is the color theme of a toast.
type Theme string

const (
	ThemeColored Theme = "colored"
	ThemeLight   Theme = "light"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeColored || t == ThemeLight }

// ClosePosition is where the close control is placed.
type ClosePosition string

const (
	ClosePositionTop    ClosePosition = "top"
	ClosePositionInline ClosePosition = "inline"
)

// Valid reports whether c is a known close control placement.
func (c ClosePosition) Valid() bool { return c == ClosePositionTop || c == ClosePositionInline }

// Defaults applied when a request leaves a field unset.
const (
	DefaultType          = TypeDefault
	DefaultPosition      = PositionTopRight
	DefaultDuration      = 3000 // milliseconds
	DefaultAnimation     = AnimationSlide
	DefaultTheme         = ThemeLight
	DefaultClosePosition = ClosePositionInline
)

// Gradient is a two-color gradient.
type Gradient struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Styles is a bag of per-toast style overrides. Zero values mean "not set".
type Styles struct {
	Background  string `json:"background,omitempty" yaml:"background,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Width       int    `json:"width,omitempty" yaml:"width,omitempty"`   // cells
	Height      int    `json:"height,omitempty" yaml:"height,omitempty"` // lines
	Border      string `json:"border,omitempty" yaml:"border,omitempty"` // none, normal, rounded, thick, double
	BorderColor string `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	Shadow      bool   `json:"shadow,omitempty" yaml:"shadow,omitempty"`
	Bold        bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic      bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Padding     []int  `json:"padding,omitempty" yaml:"padding,omitempty"` // CSS shorthand order
	IconColor   string `json:"icon_color,omitempty" yaml:"icon_color,omitempty"`
}

// Request describes one notification request. Only Message is required.
type Request struct {
	Message       string        `json:"message" yaml:"message"`
	Type          Type          `json:"type,omitempty" yaml:"type,omitempty"`
	Position      Position      `json:"position,omitempty" yaml:"position,omitempty"`
	Duration      *int          `json:"duration,omitempty" yaml:"duration,omitempty"` // milliseconds; explicit 0 closes at once
	Animation     Animation     `json:"animation,omitempty" yaml:"animation,omitempty"`
	ProgressBar   *bool         `json:"progress_bar,omitempty" yaml:"progress_bar,omitempty"`
	Gradient      *Gradient     `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	Styles        *Styles       `json:"styles,omitempty" yaml:"styles,omitempty"`
	Theme         Theme         `json:"theme,omitempty" yaml:"theme,omitempty"`
	Icon          string        `json:"icon,omitempty" yaml:"icon,omitempty"`
	ShowIcon      *bool         `json:"show_icon,omitempty" yaml:"show_icon,omitempty"`
	ClosePosition ClosePosition `json:"close_position,omitempty" yaml:"close_position,omitempty"`

	// OnClose is invoked by the presenter once the toast has finally closed.
	OnClose func() `json:"-" yaml:"-"`
}

// Record is a live toast: a request with every optional field resolved.
type Record struct {
	ID        string    `json:"id"`
	Exiting   bool      `json:"exiting"`
	CreatedAt time.Time `json:"created_at"`

	Message       string        `json:"message"`
	Type          Type          `json:"type"`
	Position      Position      `json:"position"`
	Duration      int           `json:"duration"`
	Animation     Animation     `json:"animation"`
	ProgressBar   bool          `json:"progress_bar"`
	Gradient      *Gradient     `json:"gradient,omitempty"`
	Styles        *Styles       `json:"styles,omitempty"`
	Theme         Theme         `json:"theme"`
	Icon          string        `json:"icon,omitempty"`
	ShowIcon      bool          `json:"show_icon"`
	ClosePosition ClosePosition `json:"close_position"`

	OnClose func() `json:"-"`
}

// Validation errors.
var (
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrInvalidType          = errors.New("invalid toast type")
	ErrInvalidPosition      = errors.New("invalid position")
	ErrInvalidAnimation     = errors.New("invalid animation")
	ErrInvalidTheme         = errors.New("invalid theme")
	ErrInvalidClosePosition = errors.New("invalid close position")
	ErrInvalidDuration      = errors.New("duration must not be negative")
)

// NewID returns a new ULID string.
func NewID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// Validate checks a request for values a presenter cannot render.
// Unset optional fields are always valid.
func (r *Request) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if r.Type != "" && !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, r.Type)
	}
	if r.Position != "" && !r.Position.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, r.Position)
	}
	if r.Animation != "" && !r.Animation.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnimation, r.Animation)
	}
	if r.Theme != "" && !r.Theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, r.Theme)
	}
	if r.ClosePosition != "" && !r.ClosePosition.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidClosePosition, r.ClosePosition)
	}
	if r.Duration != nil && *r.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Resolve builds a Record from a request, filling every unset field with its default.
func Resolve(id string, req Request, now time.Time) Record {
	rec := Record{
		ID:            id,
		CreatedAt:     now,
		Message:       req.Message,
		Type:          req.Type,
		Position:      req.Position,
		Duration:      DefaultDuration,
		Animation:     req.Animation,
		ProgressBar:   req.ProgressBar == nil || *req.ProgressBar,
		Gradient:      req.Gradient,
		Styles:        req.Styles,
		Theme:         req.Theme,
		Icon:          req.Icon,
		ShowIcon:      req.ShowIcon == nil || *req.ShowIcon,
		ClosePosition: req.ClosePosition,
		OnClose:       req.OnClose,
	}

	if rec.Type == "" {
		rec.Type = DefaultType
	}
	if !rec.Position.Valid() {
		rec.Position = DefaultPosition
	}
	if req.Duration != nil && *req.Duration >= 0 {
		rec.Duration = *req.Duration
	}
	if rec.Animation == "" {
		rec.Animation = DefaultAnimation
	}
	if rec.Theme == "" {
		rec.Theme = DefaultTheme
	}
	if rec.ClosePosition == "" {
		rec.ClosePosition = DefaultClosePosition
	}

	return rec
}

// DurationTime returns the configured display duration as a time.Duration.
func (r *Record) DurationTime() time.Duration {
	return time.Duration(r.Duration) * time.Millisecond
}

// Clone returns a copy that shares no mutable state with r.
func (r *Record) Clone() Record {
	c := *r
	if r.Gradient != nil {
		g := *r.Gradient
		c.Gradient = &g
	}
	if r.Styles != nil {
		s := *r.Styles
		if r.Styles.Padding != nil {
			s.Padding = append([]int(nil), r.Styles.Padding...)
		}
		c.Styles = &s
	}
	return c
}

// Bool returns a pointer to b, for the tri-state request fields.
func Bool(b bool) *bool {
	return &b
}

// Millis returns a pointer to ms, for Request.Duration.
func Millis(ms int) *int {
	return &ms
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
