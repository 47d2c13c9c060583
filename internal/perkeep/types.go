package perkeep

import "time"

// Discovery is the subset of the server's configuration document the
// client needs to find its handlers.
type Discovery struct {
	BlobRoot     string `json:"blobRoot"`
	SearchRoot   string `json:"searchRoot"`
	JSONSignRoot string `json:"jsonSignRoot"`
	UIRoot       string `json:"uiRoot"`
	Signing      struct {
		PublicKeyBlobRef string `json:"publicKeyBlobRef"`
	} `json:"signing"`
}

type SearchRequest struct {
	Expression string           `json:"expression,omitempty"`
	Constraint any              `json:"constraint,omitempty"`
	Describe   *DescribeRequest `json:"describe,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Continue   string           `json:"continue,omitempty"`
}

type DescribeRequest struct {
	Depth int            `json:"depth,omitempty"`
	Rules []DescribeRule `json:"rules,omitempty"`
}

type DescribeRule struct {
	Attrs []string `json:"attrs"`
}

type SearchResult struct {
	Blobs       []SearchResultBlob `json:"blobs"`
	Description *Description       `json:"description,omitempty"`
	Continue    string             `json:"continue,omitempty"`
}

type SearchResultBlob struct {
	Blob string `json:"blob"`
}

type Description struct {
	Meta map[string]DescribedBlob `json:"meta"`
}

// Refs returns the result blob refs in server order.
func (r SearchResult) Refs() []string {
	refs := make([]string, 0, len(r.Blobs))
	for _, b := range r.Blobs {
		refs = append(refs, b.Blob)
	}
	return refs
}

// Meta returns the description map, never nil.
func (r SearchResult) Meta() map[string]DescribedBlob {
	if r.Description == nil || r.Description.Meta == nil {
		return map[string]DescribedBlob{}
	}
	return r.Description.Meta
}

type DescribedBlob struct {
	BlobRef   string              `json:"blobRef"`
	CamliType string              `json:"camliType,omitempty"`
	Size      int64               `json:"size"`
	MIMEType  string              `json:"mimeType,omitempty"`
	Permanode *DescribedPermanode `json:"permanode,omitempty"`
	File      *FileInfo           `json:"file,omitempty"`
	Image     *ImageInfo          `json:"image,omitempty"`
}

type DescribedPermanode struct {
	Attr    map[string][]string `json:"attr"`
	ModTime time.Time           `json:"modtime"`
}

type FileInfo struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
}

type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Permanode attribute names used by the browser.
const (
	AttrTitle       = "title"
	AttrDescription = "description"
	AttrContent     = "camliContent"
	AttrMember      = "camliMember"
	AttrRoot        = "camliRoot"
)

func (d DescribedBlob) IsPermanode() bool {
	return d.CamliType == "permanode" && d.Permanode != nil
}

// Attr returns the first value of name on a permanode.
func (d DescribedBlob) Attr(name string) string {
	if d.Permanode == nil {
		return ""
	}
	if vals := d.Permanode.Attr[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// IsDynamicCollection reports whether the blob is a permanode that
// carries no content, which is how sets are represented.
func (d DescribedBlob) IsDynamicCollection() bool {
	if !d.IsPermanode() {
		return false
	}
	_, hasContent := d.Permanode.Attr[AttrContent]
	return !hasContent
}

// Members returns the camliMember values of a permanode.
func (d DescribedBlob) Members() []string {
	if d.Permanode == nil {
		return nil
	}
	return d.Permanode.Attr[AttrMember]
}

// Title picks a display title: the title attribute, then the file name,
// then the blob ref.
func (d DescribedBlob) Title() string {
	if t := d.Attr(AttrTitle); t != "" {
		return t
	}
	if d.File != nil && d.File.FileName != "" {
		return d.File.FileName
	}
	return d.BlobRef
}

// TitleOf titles ref using meta, following camliContent to the
// described file when the permanode has no title of its own.
func TitleOf(meta map[string]DescribedBlob, ref string) string {
	d, ok := meta[ref]
	if !ok {
		return ref
	}
	if t := d.Attr(AttrTitle); t != "" {
		return t
	}
	if content := d.Attr(AttrContent); content != "" {
		if c, ok := meta[content]; ok {
			return c.Title()
		}
	}
	return d.Title()
}
