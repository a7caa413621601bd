package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/recallit/core"
)

// Key prefixes for different data types
const (
	capturePrefix        = "caprec"
	captureProjectPrefix = "caprecp"
	captureSessionPrefix = "caprecs"
	captureIDSeq         = "caprecseq"
	attachmentPrefix     = "attrec"
	attachmentByCapture  = "attrecc"
	attachmentIDSeq      = "attrecseq"
	chunkPrefix          = "chkrec"
	chunkByCapture       = "chkrecc"
	chunkIDSeq           = "chkrecseq"
	sessionPrefix        = "sesrec"
	sessionProjectPrefix = "sesrecp"
	sessionIDSeq         = "sesrecseq"
)

// makeCaptureKey generates a key for a capture by ID.
func makeCaptureKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", capturePrefix, id))
}

// makeCaptureProjectKey generates a composite key for the project index.
// Format: prefix:projectID:timestamp:id
func makeCaptureProjectKey(projectID core.ID, timestamp time.Time, id core.ID) []byte {
	prefix := []byte(captureProjectPrefix + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort matches numeric order
	binary.BigEndian.PutUint64(buf[offset:], uint64(projectID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCaptureProjectKey generates a partial key for project scans.
func makePartialCaptureProjectKey(projectID core.ID) []byte {
	prefix := []byte(captureProjectPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(projectID))
	return buf
}

// makeCaptureSessionKey generates a composite key for the session index.
// Format: prefix:sessionID:timestamp:id
func makeCaptureSessionKey(sessionID core.ID, timestamp time.Time, id core.ID) []byte {
	prefix := []byte(captureSessionPrefix + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCaptureSessionKey generates a partial key for session scans.
func makePartialCaptureSessionKey(sessionID core.ID) []byte {
	prefix := []byte(captureSessionPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	return buf
}

// makeAttachmentKey generates a key for an attachment by ID.
func makeAttachmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", attachmentPrefix, id))
}

// makeAttachmentCaptureKey generates a composite key for the capture index.
// Format: prefix:captureID:id
func makeAttachmentCaptureKey(captureID, id core.ID) []byte {
	prefix := []byte(attachmentByCapture + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(captureID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialAttachmentCaptureKey generates a partial key for capture scans.
func makePartialAttachmentCaptureKey(captureID core.ID) []byte {
	prefix := []byte(attachmentByCapture + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(captureID))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkCaptureKey generates a composite key for the capture index.
// Ordinals can repeat across chunk origins, so the chunk ID is part of
// the key. Format: prefix:captureID:ordinal:id
func makeChunkCaptureKey(captureID core.ID, ordinal int, id core.ID) []byte {
	prefix := []byte(chunkByCapture + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(captureID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkCaptureKey generates a partial key for capture scans.
func makePartialChunkCaptureKey(captureID core.ID) []byte {
	prefix := []byte(chunkByCapture + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(captureID))
	return buf
}

// makeSessionKey generates a key for a session by ID.
func makeSessionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sessionPrefix, id))
}

// makeSessionProjectKey generates a composite key for the project index.
// Format: prefix:projectID:timestamp:id
func makeSessionProjectKey(projectID core.ID, timestamp time.Time, id core.ID) []byte {
	prefix := []byte(sessionProjectPrefix + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(projectID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSessionProjectKey generates a partial key for project scans.
func makePartialSessionProjectKey(projectID core.ID) []byte {
	prefix := []byte(sessionProjectPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(projectID))
	return buf
}
