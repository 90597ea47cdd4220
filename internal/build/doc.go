// Package build generates site pages: it wraps the body of a source document
// in the project's base layout and writes the result under the public directory.
//
// A Builder is bound to one project root. Build handles a single
// source/destination pair; BuildAll walks the manifest in order and stops at
// the first failure. Every failure is returned as a classified error from
// internal/foundation/errors carrying one of the tool's error codes, so the
// caller decides how to report it. Nothing in this package exits the process.
//
// The steps of a page build, in order:
//
//  1. load config.json
//  2. read the base template (required)
//  3. read the header and footer templates (optional, empty when absent)
//  4. read the source document
//  5. extract the inner HTML of its <body>
//  6. fill the layout placeholders
//  7. check the public directory exists
//  8. create the destination's parent directories
//  9. write the page, replacing any existing file
//
// No file or directory is created before step 8.
package build
