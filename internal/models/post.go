package models

// FileType classifies an uploaded media file by its MIME prefix.
type FileType string

const (
	FileTypeImage   FileType = "image"
	FileTypeVideo   FileType = "video"
	FileTypeAudio   FileType = "audio"
	FileTypeUnknown FileType = "unknown"
)

// Post represents a shared media item. UserID is nil for anonymous
// posts; the author_* fields then carry the free-text attribution the
// poster supplied.
type Post struct {
	ID              uint     `json:"id"`
	UserID          *uint    `json:"user_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FilePath        string   `json:"file_path"`
	FileType        FileType `json:"file_type"`
	Anonymous       bool     `json:"anonymous"`
	AuthorName      string   `json:"author_name,omitempty"`
	AuthorInstagram string   `json:"author_instagram,omitempty"`
	AuthorTelegram  string   `json:"author_telegram,omitempty"`
	AnonUsername    string   `json:"anon_username,omitempty"`
	Views           uint     `json:"views"`
	CreatedAt       int64    `json:"created_at"`
}

// Authorship is the tagged attribution variant for a new post: either a
// reference to a registered user or free-text anonymous credits.
type Authorship interface {
	isAuthorship()
}

// Identified attributes a post to a registered user.
type Identified struct {
	UserID uint
}

// Anonymous attributes a post to free-text author fields instead of a
// user reference. AnonUsername, when set, is remembered client-side for
// future anonymous posts.
type Anonymous struct {
	DisplayName  string
	Instagram    string
	Telegram     string
	AnonUsername string
}

func (Identified) isAuthorship() {}
func (Anonymous) isAuthorship()  {}

// PostWithAuthor is a post enriched at read time with the public view of
// its author. Author is nil for anonymous posts.
type PostWithAuthor struct {
	Post
	Author *PublicUser `json:"author,omitempty"`
}

// PageInfo describes one page of a paginated listing.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Items    []PostWithAuthor `json:"items"`
	PageInfo PageInfo         `json:"page_info"`
}

// Counters holds the next-ID generator state. Values are the next IDs to
// hand out, not counts of allocated IDs.
type Counters struct {
	UserID uint `json:"user_id"`
	PostID uint `json:"post_id"`
}
