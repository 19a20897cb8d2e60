// Package homework holds the review-status domain: the wire records of the
// status API, the shape check applied to each answer, and the tracker that
// turns status changes into chat messages.
package homework
