// Package tideschart reads the weekly tide tables published on
// tideschart.com. Each table row is one day: a weekday, a day of month, three
// or four tide events and the sunrise and sunset times. Rows are parsed
// relative to the day the table was fetched, since the site prints no month
// or year. All times are in the location of that day.
package tideschart
