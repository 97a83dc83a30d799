// Package connectors provides sources of protocol documents for the
// pipeline. The filesystem connector reads OCR text files from a
// directory and watches it for new ones.
package connectors
