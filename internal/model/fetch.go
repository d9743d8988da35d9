package model

// FetchResult is the outcome of resolving one URL through a corpus.
// Content is nil when the corpus has nothing for the URL.
type FetchResult struct {
	// RequestedURL is the URL that was asked for.
	RequestedURL string `json:"requested_url" yaml:"url"`

	// FinalURL is the URL the content was served from after redirects.
	FinalURL string `json:"final_url,omitempty" yaml:"final_url,omitempty"`

	// Content is the response body. Nil means absent.
	Content []byte `json:"-" yaml:"-"`

	// Size is the length of Content in bytes as reported by the corpus.
	Size int64 `json:"size" yaml:"size"`

	// HTTPStatus is the response status code, zero if unknown.
	HTTPStatus int `json:"http_status" yaml:"http_status"`

	// WasRedirected reports whether the fetch followed at least one redirect.
	WasRedirected bool `json:"was_redirected" yaml:"was_redirected"`

	// ContentType is the media type announced by the server, if any.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// EffectiveURL returns the URL relative links on the page resolve against:
// the final URL when the fetch was redirected and one was supplied,
// otherwise the requested URL.
func (r *FetchResult) EffectiveURL() string {
	if r.WasRedirected && r.FinalURL != "" {
		return r.FinalURL
	}
	return r.RequestedURL
}

// Empty reports whether the result carries no usable content.
func (r *FetchResult) Empty() bool {
	return r == nil || r.Content == nil || r.Size == 0
}
