// Package postprocess provides steps that run after the engine has applied
// an iteration's movements.
package postprocess
