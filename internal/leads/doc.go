// Package leads normalizes a submitted quote form into the lead payload sent
// to the office: contact fields split from service details, urgency and
// project size classified by per-service rules, and a one-line headline.
package leads
