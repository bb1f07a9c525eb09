// Package stencil is a sandboxed, template-driven code generation assistant.
//
// Stencil turns named task templates plus key/value inputs into generated
// files, optionally rewritten by a language model, staged under the project's
// .stencil/preview directory and only written into the real project tree
// after explicit review.
package stencil

// Version is the current stencil release.
const Version = "0.1.0"
