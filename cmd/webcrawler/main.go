// Package main provides the entry point for the webcrawler CLI.
//
// webcrawler crawls a set of seed URLs restricted to one domain, avoids
// crawler traps and writes a report of the most linked and wordiest pages,
// the most common words and the pages found per subdomain.
//
// Usage:
//
//	webcrawler crawl http://www.ics.uci.edu/
//	webcrawler crawl --resume
//	webcrawler report --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
