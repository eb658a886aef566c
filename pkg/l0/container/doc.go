// Package container provides fixed capacity containers used by the L0 link.
//
// Capacity is chosen once at construction and storage is allocated at that
// point only. No operation grows the storage afterwards: a full container
// rejects the value and hands it back to the caller.
package container
