// Package application provides application initialization and dependency
// wiring. It builds the environment source and resolver from the tool
// configuration and drives one-shot or watch-mode rendering, making the main
// package cleaner and more focused on CLI parsing and orchestration.
package application
