package email

// Email is a rendered outbound message.
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
}

// TemplateData is passed to html templates.
type TemplateData map[string]interface{}
