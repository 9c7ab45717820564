// Package domain defines the core domain models for DynBind.
//
// Domain models are pure values without IO dependencies or framework
// coupling. This package contains:
//
//   - Symbol: namespace-qualified names used to identify vars
//   - Errors: coded error definitions shared by every layer
//
// Every failure raised by the binding runtime is a *DomainError so callers
// can branch with errors.Is against the exported sentinels.
package domain
