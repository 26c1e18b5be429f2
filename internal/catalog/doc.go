// Package catalog fetches supplementary book metadata from a catalog page.
//
// The scrape is best effort glue: a page layout change degrades to partial or
// empty results rather than breaking the build pipeline, and any network or
// parse failure is reported to the caller without touching files on disk.
package catalog
