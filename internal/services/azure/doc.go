// Package azure fetches full backup archives from an Azure Blob Storage
// container and keeps a local ZIP cache.
//
// Downloads validate the ZIP central directory before they count; corrupt
// cache entries are discarded and re-downloaded with bounded retries.
// Integrity and retry live here so the tracker core never sees a broken
// archive.
package azure
