// Package service runs workloads against the binding runtime.
//
// This package contains:
//
//   - DemoService: scripted binding scenarios with step-by-step results
//   - StressService: concurrent push/set/pop and root mutation load with
//     a consistency check at the end
//
// Services hold no state of their own beyond the runtime they were built
// with and are safe for concurrent use.
package service
