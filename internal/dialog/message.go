// Package dialog implements the one-shot request/response exchange between
// the widget and its transient dialogs. A dialog receives its full init
// payload when opened, sends nothing until it answers, and answers exactly once.
package dialog

import (
	"errors"

	"persona-board/internal/i18n"
	"persona-board/internal/model"
)

type Kind string

const (
	KindCategoryForm   Kind = "categoryForm"
	KindDeleteConfirm  Kind = "deleteConfirm"
	KindCategoryPicker Kind = "categoryPicker"
	KindSettings       Kind = "settings"
	KindImport         Kind = "import"
	KindExport         Kind = "export"
)

// Type discriminates inbound (dialog to widget) messages.
type Type string

const (
	TypeAddCategory           Type = "addCategory"
	TypeUpdateCategory        Type = "updateCategory"
	TypeImportData            Type = "importData"
	TypeUIReady               Type = "uiReady"
	TypeExportComplete        Type = "exportComplete"
	TypeExportError           Type = "exportError"
	TypeUpdateProfileCategory Type = "updateProfileCategory"
	TypeConfirmDelete         Type = "confirmDelete"
	TypeCancelDelete          Type = "cancelDelete"
	TypeUpdateSettings        Type = "updateSettings"
	TypeCancelSettings        Type = "cancelSettings"
)

// TypeExportPayload is the only outbound (widget to dialog) message.
const TypeExportPayload = "exportPayload"

const (
	DeleteProfile  = "profile"
	DeleteCategory = "category"
)

var (
	ErrSessionClosed     = errors.New("dialog session is closed")
	ErrUnexpectedMessage = errors.New("unexpected dialog message")
	ErrNoDialog          = errors.New("no dialog is open")
)

// Message is an inbound dialog message. Which fields are set depends on Type.
type Message struct {
	Type       Type                  `json:"type"`
	ID         string                `json:"id,omitempty"`
	Name       string                `json:"name,omitempty"`
	Icon       string                `json:"icon,omitempty"`
	Color      string                `json:"color,omitempty"`
	Data       string                `json:"data,omitempty"`
	ProfileID  string                `json:"profileId,omitempty"`
	CategoryID string                `json:"categoryId,omitempty"`
	DeleteType string                `json:"deleteType,omitempty"`
	Settings   *model.WidgetSettings `json:"settings,omitempty"`
	Language   model.Language        `json:"language,omitempty"`
}

// Terminal reports whether m ends the dialog. Only the export readiness
// handshake is not terminal.
func (m Message) Terminal() bool { return m.Type != TypeUIReady }

type Outbound struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Request is the init payload a dialog is opened with.
type Request struct {
	Kind     Kind           `json:"kind"`
	Title    string         `json:"title"`
	Language model.Language `json:"language"`
	Strings  i18n.Strings   `json:"strings"`

	// category form: nil Category creates a new one
	Category  *model.Category  `json:"category,omitempty"`
	ColorKeys []model.ColorKey `json:"colorKeys,omitempty"`

	// category picker
	Categories        []model.Category `json:"categories,omitempty"`
	ProfileID         string           `json:"profileId,omitempty"`
	CurrentCategoryID string           `json:"currentCategoryId,omitempty"`

	// delete confirm
	DeleteType  string `json:"deleteType,omitempty"`
	TargetID    string `json:"targetId,omitempty"`
	TargetName  string `json:"targetName,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
	Message     string `json:"message,omitempty"`

	// settings
	Settings *model.WidgetSettings `json:"settings,omitempty"`
}

var accepted = map[Kind][]Type{
	KindCategoryForm:   {TypeAddCategory, TypeUpdateCategory},
	KindDeleteConfirm:  {TypeConfirmDelete, TypeCancelDelete},
	KindCategoryPicker: {TypeUpdateProfileCategory},
	KindSettings:       {TypeUpdateSettings, TypeCancelSettings},
	KindImport:         {TypeImportData},
	KindExport:         {TypeUIReady, TypeExportComplete, TypeExportError},
}

// Accepts reports whether a dialog of kind k may send t.
func (k Kind) Accepts(t Type) bool {
	for _, x := range accepted[k] {
		if x == t {
			return true
		}
	}
	return false
}
