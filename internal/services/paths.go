package services

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Object key layout inside the media bucket:
//
//	quarantine/{ownerUid}/{mediaId}/{fileName}   unreviewed upload
//	public/{ownerUid}/{mediaId}.{ext}            approved media
const (
	quarantinePrefix = "quarantine/"
	publicPrefix     = "public/"
)

// UploadRef identifies one quarantined upload parsed from a finalize event.
type UploadRef struct {
	OwnerUID string
	MediaID  string
	FileName string
}

// ParseQuarantineKey matches an object key against the quarantine layout.
// Keys of any other shape return ok=false and are ignored by the pipeline.
func ParseQuarantineKey(key string) (UploadRef, bool) {
	if !strings.HasPrefix(key, quarantinePrefix) {
		return UploadRef{}, false
	}
	parts := strings.Split(strings.TrimPrefix(key, quarantinePrefix), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return UploadRef{}, false
	}
	return UploadRef{OwnerUID: parts[0], MediaID: parts[1], FileName: parts[2]}, true
}

// QuarantineKey builds the quarantine key for an upload.
func QuarantineKey(ownerUID, mediaID, fileName string) string {
	return quarantinePrefix + ownerUID + "/" + mediaID + "/" + fileName
}

// PublicKey derives the public key for an approved media item, preserving
// the original file extension.
func PublicKey(ownerUID, mediaID, fileName string) string {
	ext := path.Ext(fileName)
	return publicPrefix + ownerUID + "/" + mediaID + ext
}

// PublicURL computes the stable, client-reconstructable URL for a public
// object key. Each path segment is URL-encoded independently.
func PublicURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), strings.Join(segments, "/"))
}
