// Package extract turns unstructured search and LLM answers into candidate event records.
//
// Text is segmented into blocks (blank lines and markdown heading/bullet markers start a
// new block), summary and JSON-fragment blocks are dropped, and each remaining block is
// matched against ordered date, time, title and URL rules. A block without a date is not
// a candidate. Extraction is deterministic: the same text always yields the same records
// in block order.
package extract
