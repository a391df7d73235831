// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"github.com/featurebasedb/traveldb/pool"
)

// relNode is one link of a per-user association list. Nodes for every list
// come out of one shared pool owned by the user manager, so a list is just a
// head pointer held by its user record.
type relNode struct {
	id   string
	next *relNode
}

// relList is a singly linked id list built by prepend, so it holds ids in
// reverse insertion order. Queries wanting chronological order sort the
// resolved entities themselves.
type relList struct {
	head *relNode
	n    int
}

func (l *relList) prepend(nodes *pool.Pool[relNode], id string) {
	node := nodes.Alloc()
	node.id = id
	node.next = l.head
	l.head = node
	l.n++
}

func (l *relList) len() int { return l.n }

// ids returns the stored ids, newest first.
func (l *relList) ids() []string {
	out := make([]string, 0, l.n)
	for node := l.head; node != nil; node = node.next {
		out = append(out, node.id)
	}
	return out
}
