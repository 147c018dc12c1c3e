// Package page drives rendered web pages. A Driver navigates, waits for
// elements, reads their text and clicks them. Browser is backed by headless
// Chrome through chromedp; Static serves fixed HTML documents through
// goquery and is used for tests and offline replays.
package page
