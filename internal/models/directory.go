package models

// LoadStatus tracks the directory load lifecycle.
type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadLoaded  LoadStatus = "loaded"
	LoadFailed  LoadStatus = "load_error"
)

// ModalState is orthogonal to the load status.
type ModalState string

const (
	ModalNone    ModalState = ""
	ModalAdding  ModalState = "adding"
	ModalEditing ModalState = "editing"
)

// TeacherForm holds the raw field strings as typed by the user.
type TeacherForm struct {
	Name     string `json:"name" form:"name"`
	Subject  string `json:"subject" form:"subject"`
	Location string `json:"location" form:"location"`
	Rating   string `json:"rating" form:"rating"`
	Fee      string `json:"fee" form:"fee"`
}

// FieldErrors maps a form field name to its localized message.
type FieldErrors map[string]string

// FormState is the modal form as last rendered.
type FormState struct {
	Values TeacherForm `json:"values"`
	Errors FieldErrors `json:"errors,omitempty"`
}

// DirectoryState is the per-session state owned by the directory coordinator.
type DirectoryState struct {
	Status      LoadStatus `json:"status"`
	LoadError   string     `json:"load_error,omitempty"`
	SubmitError string     `json:"submit_error,omitempty"`
	Teachers    []Teacher  `json:"teachers"`
	CurrentPage int        `json:"current_page"`
	Modal       ModalState `json:"modal"`
	EditingID   string     `json:"editing_id,omitempty"`
	Form        FormState  `json:"form"`
}

// NewDirectoryState returns the state of a fresh session.
func NewDirectoryState() *DirectoryState {
	return &DirectoryState{Status: LoadIdle, CurrentPage: 1, Teachers: []Teacher{}}
}

// ModalOpen reports whether background scrolling should be suppressed.
func (s *DirectoryState) ModalOpen() bool {
	return s.Modal != ModalNone
}

// Editing returns the record under edit, if any.
func (s *DirectoryState) Editing() (*Teacher, bool) {
	if s.Modal != ModalEditing {
		return nil, false
	}
	for i := range s.Teachers {
		if s.Teachers[i].ID == s.EditingID {
			return &s.Teachers[i], true
		}
	}
	return nil, false
}
