// Package handler serves the decoy healthcare portal.
//
// Every page render mints a honeytoken bound to "page_visit:{path}" and
// embeds it twice: in an HTML comment and in a hidden beacon link. Following
// the link (GET /honeytoken?token=...) records an access and raises an alert.
// The bait login and the patient API look real but expose only fixed records.
//
// Store failures never reach the visitor: pages render, beacons redirect and
// logins redirect whatever the token store does.
package handler
