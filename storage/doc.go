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


// Package storage provides the storage abstraction layer for recallit.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Scoping
//
// Every repository operation takes a Scope identifying the user the
// operation runs for. Records owned by a different user are reported
// as ErrNotFound, never as a distinct "forbidden" state. Background
// pipelines that own the rows they process use PrivilegedScope.
//
// # Constructor Return Type Pattern
//
// Public constructors return the repository interfaces rather than
// concrete types:
//
//	repo, err := badger.NewCaptureRepository(backend)  // returns storage.CaptureRepository
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
package storage
