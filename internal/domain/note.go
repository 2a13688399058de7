package domain

import "time"

const DefaultNoteTag = "General"

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteFields es la parte de una nota nueva que envía el cliente.
type NoteFields struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

// NotePatch lleva una actualización parcial; los campos no enviados no cambian.
type NotePatch struct {
	Title Optional[string] `json:"title"`
	Body  Optional[string] `json:"body"`
	Tag   Optional[string] `json:"tag"`
}

// Apply aplica el patch sobre n y devuelve el resultado.
func (p NotePatch) Apply(n Note) Note {
	if p.Title.Set {
		n.Title = p.Title.Value
	}
	if p.Body.Set {
		n.Body = p.Body.Value
	}
	if p.Tag.Set {
		n.Tag = p.Tag.Value
	}
	return n
}
