package webutil

const (
	HeaderContentType = "Content-Type"

	ContentTypeJSONUTF8 = "application/json; charset=utf-8"
)
