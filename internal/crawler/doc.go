// Package crawler implements the two-stage crawl engine: stage 1 discovers
// in-scope links from a start URL, stage 2 feeds selected links through an
// external structured-data extractor. Both stages checkpoint their progress
// so an interrupted run resumes without repeating finished work.
package crawler
