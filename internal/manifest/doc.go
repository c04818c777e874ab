// Package manifest models the published update manifest: a mapping of
// version label to UpdateRecord plus the derived latest version.
//
// The latest version is chosen by parsing each label as a floating point
// number using the leading-prefix rules of JavaScript's parseFloat, which is
// what the Android clients consuming the document were written against. This
// ordering is not semantic versioning: "1.10" parses as 1.1 and therefore
// sorts below "1.2". See LatestVersion.
//
// The emitted document uses schema version 2: forced and automatic are always
// present on every record.
package manifest
