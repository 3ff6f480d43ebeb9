package content

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDetailPageRendersMarkdown(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"projects/geohub.md": {Data: []byte(`---
title: GeoHub
subtitle: Data catalog
icon: database
tool_url: https://geo.lab/geohub
updated_at: 2025-03-01
---

## Overview

GeoHub manages **data**.

<script>alert(1)</script>

## Supported Data Types

- Field measurements
`)},
	})
	page, err := l.DetailPage(context.Background(), "geohub")
	require.NoError(t, err)
	require.Equal(t, "GeoHub", page.Title)
	require.Equal(t, "Data catalog", page.Subtitle)
	require.Equal(t, "https://geo.lab/geohub", page.ToolURL)
	require.Equal(t, "Access Tool", page.ToolLabel)
	require.Equal(t, 2025, page.UpdatedAt.Year())
	require.Contains(t, string(page.Body), "<strong>data</strong>")
	require.NotContains(t, string(page.Body), "<script>")
	require.Equal(t, []Heading{
		{ID: "overview", Text: "Overview"},
		{ID: "supported-data-types", Text: "Supported Data Types"},
	}, page.Sections)
}

func TestDetailPageWithoutFrontMatterUsesSlug(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"projects/field-notes.md": {Data: []byte("Just a body.\n")},
	})
	page, err := l.DetailPage(context.Background(), "field-notes")
	require.NoError(t, err)
	require.Equal(t, "Field Notes", page.Title)
	require.False(t, page.UnderDevelopment())
}

func TestDetailPageUnknownIDIsNotFound(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{})
	for _, id := range []string{"geogallery", "", "../data/site-config", "Geo Hub"} {
		_, err := l.DetailPage(context.Background(), id)
		require.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestRepositoryDetailPagesRender(t *testing.T) {
	t.Parallel()

	l := NewLoader("")
	l.SetContentDir("../../content")
	for _, id := range []string{"qemscan", "rockvision", "geohub", "field2model", "geoprompts"} {
		page, err := l.DetailPage(context.Background(), id)
		require.NoError(t, err, id)
		require.NotEmpty(t, page.Sections, id)
		require.True(t, strings.HasPrefix(page.ToolURL, "https://"), id)
	}
}
