// Package ui implements an interactive terminal catalog browser using bubbletea's Elm architecture.
//
// The TUI is read-only and mirrors the site's ranking pages:
//  1. [CategoryView] : Browse categories with work counts and their current leader
//  2. [WorkListView] : Works in one category, ranked by votes
//  3. [WorkDetailView] : A single work with the users who upvoted it
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Data is loaded through [WorkSource] and [VoterSource], which the repositories satisfy.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
