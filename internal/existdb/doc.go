// Package existdb extracts charter paths from eXist-db full backup archives.
//
// Each backup is a ZIP holding the repository tree plus one __contents__.xml
// descriptor per collection directory. The descriptor and the raw ZIP entry
// list are two independent views of the same collection; Extract reconciles
// them into a single normalized path mapping and reports the paths that only
// one of the two views contains.
package existdb
