// Package feed builds the catalogue CSV for one store and pushes it to the
// store's Meta product feed.
//
// A publish run resolves the remote feed id (persisted id, then a feed with
// the autogenerated name, then a newly created feed), streams every exported
// product into a locked CSV artifact under <var>/export, and uploads that
// artifact. Runs are not resumable; each one regenerates the artifact.
package feed
