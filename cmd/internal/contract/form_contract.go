package contract

// FormField describes one input of a form the client should render.
type FormField struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Required  bool   `json:"required"`
	MaxLength int    `json:"max_length,omitempty"`
	Value     string `json:"value,omitempty"`
}

type Form struct {
	Method string       `json:"method"`
	Action string       `json:"action"`
	Fields []*FormField `json:"fields"`
}
