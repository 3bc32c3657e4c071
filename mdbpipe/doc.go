// Package mdbpipe applies ordered document transformations to BSON
// documents as they cross the boundary between application code and Mongo.
// Transformers convert application-defined types into storage-native
// encodings on the way in and restore them on the way out.
// This package is patterned after the wrapper serialization code in
// madkins23/go-serial.
package mdbpipe
