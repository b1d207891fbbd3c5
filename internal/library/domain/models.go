package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MediaKind classifies a library folder and the items discovered in it.
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
	MediaKindComic MediaKind = "comic"
	MediaKindBook  MediaKind = "book"
)

// ParseMediaKind parses a media kind from its string form.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(s)) {
	case MediaKindMovie:
		return MediaKindMovie, nil
	case MediaKindTV:
		return MediaKindTV, nil
	case MediaKindComic:
		return MediaKindComic, nil
	case MediaKindBook:
		return MediaKindBook, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// Valid reports whether the kind is one of the known values.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindMovie, MediaKindTV, MediaKindComic, MediaKindBook:
		return true
	}
	return false
}

// LibraryFolder is a watched filesystem root registered by the user.
type LibraryFolder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Path      string    `json:"path" gorm:"uniqueIndex;not null"`
	MediaKind MediaKind `json:"media_kind" gorm:"type:varchar(20);not null"`
	Enabled   bool      `json:"enabled" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	MediaItems []MediaItem `json:"-" gorm:"foreignKey:LibraryFolderID;constraint:OnDelete:CASCADE"`
}

// MediaItem is one discovered file inside a library folder. The kind is
// copied from the folder at creation and never changes afterwards.
type MediaItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	LibraryFolderID uint      `json:"library_folder_id" gorm:"not null;index"`
	MediaKind       MediaKind `json:"media_kind" gorm:"type:varchar(20);not null;index"`
	Title           string    `json:"title" gorm:"not null;index"`
	FilePath        string    `json:"file_path" gorm:"uniqueIndex;not null"`
	FileSize        int64     `json:"file_size"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Metadata *VideoMetadata `json:"-" gorm:"foreignKey:MediaItemID;constraint:OnDelete:CASCADE"`
}

// VideoMetadata holds externally sourced metadata for one media item.
// At most one row exists per item; upserts replace every column.
type VideoMetadata struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	MediaItemID  uint      `json:"media_item_id" gorm:"uniqueIndex;not null"`
	TmdbID       *int      `json:"tmdb_id,omitempty" gorm:"index"`
	TvdbID       *int      `json:"tvdb_id,omitempty" gorm:"index"`
	ImdbID       *string   `json:"imdb_id,omitempty" gorm:"type:varchar(20)"`
	Overview     string    `json:"overview,omitempty" gorm:"type:text"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty" gorm:"type:varchar(20)"`
	Runtime      *int      `json:"runtime,omitempty"`
	VoteAverage  *float64  `json:"vote_average,omitempty"`
	VoteCount    *int      `json:"vote_count,omitempty"`
	Genres       string    `json:"-" gorm:"type:text"` // JSON-encoded list
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GenresList decodes the JSON-encoded genres column. Malformed or empty
// content yields an empty list rather than an error.
func (m *VideoMetadata) GenresList() []string {
	if m.Genres == "" {
		return []string{}
	}
	var genres []string
	if err := json.Unmarshal([]byte(m.Genres), &genres); err != nil {
		return []string{}
	}
	return genres
}

// SetGenres stores the list as its JSON encoding.
func (m *VideoMetadata) SetGenres(genres []string) {
	if len(genres) == 0 {
		m.Genres = ""
		return
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		m.Genres = ""
		return
	}
	m.Genres = string(encoded)
}

// MetadataView is VideoMetadata shaped for API responses, with the
// genres column decoded.
type MetadataView struct {
	TmdbID       *int     `json:"tmdb_id,omitempty"`
	TvdbID       *int     `json:"tvdb_id,omitempty"`
	ImdbID       *string  `json:"imdb_id,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	Runtime      *int     `json:"runtime,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
	VoteCount    *int     `json:"vote_count,omitempty"`
	Genres       []string `json:"genres"`
}

// NewMetadataView builds the API view of a metadata row. Nil in, nil out.
func NewMetadataView(m *VideoMetadata) *MetadataView {
	if m == nil {
		return nil
	}
	return &MetadataView{
		TmdbID:       m.TmdbID,
		TvdbID:       m.TvdbID,
		ImdbID:       m.ImdbID,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		Runtime:      m.Runtime,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		Genres:       m.GenresList(),
	}
}

// MediaItemWithMetadata is the read model returned by the library API:
// one item plus its metadata when present.
type MediaItemWithMetadata struct {
	MediaItem
	Metadata *MetadataView `json:"metadata,omitempty"`
}

// ScanResult accumulates the outcome of scanning one library folder.
type ScanResult struct {
	TotalFiles    int `json:"total_files"`
	NewItems      int `json:"new_items"`
	ExistingItems int `json:"existing_items"`
	Errors        int `json:"errors"`
}

// FolderScanResult pairs a scan result with the folder it belongs to,
// used by scan-all to report per-folder outcomes in-band.
type FolderScanResult struct {
	LibraryFolderID uint   `json:"library_folder_id"`
	FolderName      string `json:"folder_name"`
	ScanResult
}

// TableName customizations.
func (LibraryFolder) TableName() string {
	return "library_folders"
}

func (MediaItem) TableName() string {
	return "media_items"
}

func (VideoMetadata) TableName() string {
	return "video_metadata"
}
