// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/recallit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalCapture serializes a Capture to bytes.
func MarshalCapture(capture *core.Capture) []byte {
	buf := make([]byte, core.CaptureMUS.Size(*capture))
	core.CaptureMUS.Marshal(*capture, buf)
	return buf
}

// UnmarshalCapture deserializes a Capture from bytes.
func UnmarshalCapture(data []byte) (*core.Capture, error) {
	capture, _, err := core.CaptureMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &capture, nil
}

// MarshalAttachment serializes an Attachment to bytes.
func MarshalAttachment(attachment *core.Attachment) []byte {
	buf := make([]byte, core.AttachmentMUS.Size(*attachment))
	core.AttachmentMUS.Marshal(*attachment, buf)
	return buf
}

// UnmarshalAttachment deserializes an Attachment from bytes.
func UnmarshalAttachment(data []byte) (*core.Attachment, error) {
	attachment, _, err := core.AttachmentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *core.Session) []byte {
	buf := make([]byte, core.SessionMUS.Size(*session))
	core.SessionMUS.Marshal(*session, buf)
	return buf
}

// UnmarshalSession deserializes a Session from bytes.
func UnmarshalSession(data []byte) (*core.Session, error) {
	session, _, err := core.SessionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
