// Package sheets reads inventory rows from Google Sheets so they can be fed
// through the same header-mapping decoder as uploaded workbooks.
package sheets
