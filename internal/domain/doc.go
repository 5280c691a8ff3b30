// Package domain contains the core business entities and value objects of
// the intelligence API: scheduling state, grading results, performance
// context, study sessions, and reviews. It is independent of any specific
// infrastructure or delivery mechanism; the scheduling algorithm itself
// lives in the srs subpackage.
package domain
