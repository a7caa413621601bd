package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for every persisted type. Field order is the wire format;
// appending fields is safe, reordering or removing them is not.

// IDMUS serializes IDs as varint uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// Timestamps are stored as Unix microseconds, zero time as 0.

func marshalTime(t time.Time, bs []byte) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Marshal(us, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var us int64
	if !t.IsZero() {
		us = t.UnixMicro()
	}
	return varint.Int64.Size(us)
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}

// CaptureMUS serializes Capture values.
var CaptureMUS = captureMUS{}

type captureMUS struct{}

func (captureMUS) Marshal(v Capture, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.OwnerId), bs[n:])
	n += varint.Uint64.Marshal(uint64(v.ProjectId), bs[n:])
	n += varint.Uint64.Marshal(uint64(v.SessionId), bs[n:])
	n += varint.Int.Marshal(int(v.Type), bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += ord.String.Marshal(v.SourceURL, bs[n:])
	n += ord.String.Marshal(v.PageTitle, bs[n:])
	n += varint.Float64.Marshal(v.VideoStart, bs[n:])
	n += varint.Float64.Marshal(v.VideoEnd, bs[n:])
	n += ord.String.Marshal(v.ErrorLog, bs[n:])
	n += ord.String.Marshal(v.CodeDiff, bs[n:])
	n += ord.String.Marshal(v.FileTree, bs[n:])
	n += ord.String.Marshal(v.FilePath, bs[n:])
	n += varint.Int.Marshal(v.Priority, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (captureMUS) Unmarshal(bs []byte) (v Capture, n int, err error) {
	var n1 int
	var raw uint64
	var i int
	if raw, n1, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n + n1, err
	}
	v.Id, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.OwnerId, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.ProjectId, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.SessionId, n = ID(raw), n+n1
	if i, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Type, n = CaptureType(i), n+n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.PageTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.VideoStart, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.VideoEnd, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ErrorLog, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CodeDiff, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.FileTree, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.FilePath, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Priority, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (captureMUS) Size(v Capture) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.OwnerId))
	size += varint.Uint64.Size(uint64(v.ProjectId))
	size += varint.Uint64.Size(uint64(v.SessionId))
	size += varint.Int.Size(int(v.Type))
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.Summary)
	size += ord.String.Size(v.SourceURL)
	size += ord.String.Size(v.PageTitle)
	size += varint.Float64.Size(v.VideoStart)
	size += varint.Float64.Size(v.VideoEnd)
	size += ord.String.Size(v.ErrorLog)
	size += ord.String.Size(v.CodeDiff)
	size += ord.String.Size(v.FileTree)
	size += ord.String.Size(v.FilePath)
	size += varint.Int.Size(v.Priority)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// AttachmentMUS serializes Attachment values.
var AttachmentMUS = attachmentMUS{}

type attachmentMUS struct{}

func (attachmentMUS) Marshal(v Attachment, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.CaptureId), bs[n:])
	n += ord.String.Marshal(v.ObjectKey, bs[n:])
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += ord.String.Marshal(v.DisplayName, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (attachmentMUS) Unmarshal(bs []byte) (v Attachment, n int, err error) {
	var n1 int
	var raw uint64
	var i int
	if raw, n1, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n + n1, err
	}
	v.Id, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.CaptureId, n = ID(raw), n+n1
	if v.ObjectKey, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if i, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Kind, n = AttachmentKind(i), n+n1
	if v.DisplayName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (attachmentMUS) Size(v Attachment) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.CaptureId))
	size += ord.String.Size(v.ObjectKey)
	size += varint.Int.Size(int(v.Kind))
	size += ord.String.Size(v.DisplayName)
	size += sizeTime(v.CreatedAt)
	return size
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.CaptureId), bs[n:])
	n += varint.Uint64.Marshal(uint64(v.ProjectId), bs[n:])
	n += varint.Int.Marshal(v.Ordinal, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += varint.Int.Marshal(int(v.Origin), bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	var raw uint64
	var i int
	if raw, n1, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n + n1, err
	}
	v.Id, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.CaptureId, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.ProjectId, n = ID(raw), n+n1
	if v.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if i, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Origin, n = ChunkOrigin(i), n+n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.CaptureId))
	size += varint.Uint64.Size(uint64(v.ProjectId))
	size += varint.Int.Size(v.Ordinal)
	size += ord.String.Size(v.Text)
	size += sizeVector(v.Vector)
	size += varint.Int.Size(int(v.Origin))
	size += sizeTime(v.CreatedAt)
	return size
}

// SessionMUS serializes Session values.
var SessionMUS = sessionMUS{}

type sessionMUS struct{}

func (sessionMUS) Marshal(v Session, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.OwnerId), bs[n:])
	n += varint.Uint64.Marshal(uint64(v.ProjectId), bs[n:])
	n += marshalTime(v.StartedAt, bs[n:])
	n += marshalTime(v.EndedAt, bs[n:])
	n += marshalTime(v.LastActiveAt, bs[n:])
	n += ord.String.Marshal(v.ActiveFile, bs[n:])
	n += ord.String.Marshal(v.Debrief, bs[n:])
	return n
}

func (sessionMUS) Unmarshal(bs []byte) (v Session, n int, err error) {
	var n1 int
	var raw uint64
	if raw, n1, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n + n1, err
	}
	v.Id, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.OwnerId, n = ID(raw), n+n1
	if raw, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.ProjectId, n = ID(raw), n+n1
	if v.StartedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.EndedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.LastActiveAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ActiveFile, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Debrief, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (sessionMUS) Size(v Session) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.OwnerId))
	size += varint.Uint64.Size(uint64(v.ProjectId))
	size += sizeTime(v.StartedAt)
	size += sizeTime(v.EndedAt)
	size += sizeTime(v.LastActiveAt)
	size += ord.String.Size(v.ActiveFile)
	size += ord.String.Size(v.Debrief)
	return size
}
