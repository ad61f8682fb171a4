// Package scraper fetches event calendar pages and turns them into plain text.
//
// A Scraper satisfies search.Searcher with the page URL as the query, so calendar
// pages listed in the config run through the same segmentation and extraction as
// search answers. HTML is reduced to one line per block element with link targets
// kept next to their text.
package scraper
