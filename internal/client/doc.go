// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It runs the terminal UI in the foreground while the sync coordinator and
// the connectivity monitor work in the background, and stops both when the
// UI exits.
package client
