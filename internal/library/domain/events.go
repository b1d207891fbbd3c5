package domain

import (
	"strconv"
	"time"
)

// Event type names published on the bus.
const (
	EventTypeFolderCreated   = "folder.created"
	EventTypeFolderDeleted   = "folder.deleted"
	EventTypeMediaAdded      = "media.added"
	EventTypeScanCompleted   = "library.scan_completed"
	EventTypeMetadataUpdated = "media.metadata_updated"
)

// FolderCreatedEvent is published when a library folder is registered
type FolderCreatedEvent struct {
	Folder    *LibraryFolder
	timestamp int64
}

func NewFolderCreatedEvent(folder *LibraryFolder) *FolderCreatedEvent {
	return &FolderCreatedEvent{
		Folder:    folder,
		timestamp: time.Now().Unix(),
	}
}

func (e *FolderCreatedEvent) EventType() string {
	return EventTypeFolderCreated
}

func (e *FolderCreatedEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *FolderCreatedEvent) AggregateID() string {
	return strconv.FormatUint(uint64(e.Folder.ID), 10)
}

// FolderDeletedEvent is published when a library folder is removed
type FolderDeletedEvent struct {
	FolderID  uint
	timestamp int64
}

func NewFolderDeletedEvent(folderID uint) *FolderDeletedEvent {
	return &FolderDeletedEvent{
		FolderID:  folderID,
		timestamp: time.Now().Unix(),
	}
}

func (e *FolderDeletedEvent) EventType() string {
	return EventTypeFolderDeleted
}

func (e *FolderDeletedEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *FolderDeletedEvent) AggregateID() string {
	return strconv.FormatUint(uint64(e.FolderID), 10)
}

// MediaAddedEvent is published when the scanner inserts a new media item
type MediaAddedEvent struct {
	Item      *MediaItem
	timestamp int64
}

func NewMediaAddedEvent(item *MediaItem) *MediaAddedEvent {
	return &MediaAddedEvent{
		Item:      item,
		timestamp: time.Now().Unix(),
	}
}

func (e *MediaAddedEvent) EventType() string {
	return EventTypeMediaAdded
}

func (e *MediaAddedEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *MediaAddedEvent) AggregateID() string {
	return strconv.FormatUint(uint64(e.Item.ID), 10)
}

// ScanCompletedEvent is published when a folder scan finishes
type ScanCompletedEvent struct {
	Folder    *LibraryFolder
	Result    ScanResult
	timestamp int64
}

func NewScanCompletedEvent(folder *LibraryFolder, result ScanResult) *ScanCompletedEvent {
	return &ScanCompletedEvent{
		Folder:    folder,
		Result:    result,
		timestamp: time.Now().Unix(),
	}
}

func (e *ScanCompletedEvent) EventType() string {
	return EventTypeScanCompleted
}

func (e *ScanCompletedEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *ScanCompletedEvent) AggregateID() string {
	return strconv.FormatUint(uint64(e.Folder.ID), 10)
}

// MetadataUpdatedEvent is published after a metadata upsert for an item
type MetadataUpdatedEvent struct {
	MediaItemID uint
	Provider    string
	timestamp   int64
}

func NewMetadataUpdatedEvent(mediaItemID uint, provider string) *MetadataUpdatedEvent {
	return &MetadataUpdatedEvent{
		MediaItemID: mediaItemID,
		Provider:    provider,
		timestamp:   time.Now().Unix(),
	}
}

func (e *MetadataUpdatedEvent) EventType() string {
	return EventTypeMetadataUpdated
}

func (e *MetadataUpdatedEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *MetadataUpdatedEvent) AggregateID() string {
	return strconv.FormatUint(uint64(e.MediaItemID), 10)
}
