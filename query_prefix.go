// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// userPrefixQuery (tag 9) lists the users whose name starts with a prefix,
// ordered by collated name, id ascending between equal names. One collator
// is built per batch and used for every comparison, so the order is fixed
// for the batch's duration. Prefix matching itself is plain byte matching;
// only the output order is collated.
type userPrefixQuery struct{}

type userPrefixArgs struct {
	prefix string
}

type userPrefixStats map[string][]*User

func (userPrefixQuery) name() string { return "user-prefix" }

func (userPrefixQuery) parseArguments(fields []string) (queryArgs, error) {
	if len(fields) != 1 {
		return nil, argCountError("user-prefix", "1", len(fields))
	}
	return userPrefixArgs{prefix: fields[0]}, nil
}

func (userPrefixQuery) generateStatistics(db *Database, args []queryArgs) (queryStats, error) {
	acc := make(userPrefixStats)
	prefixes := make([]string, 0, len(args))
	for _, a := range args {
		prefix := a.(userPrefixArgs).prefix
		if _, ok := acc[prefix]; !ok {
			acc[prefix] = nil
			prefixes = append(prefixes, prefix)
		}
	}
	slices.Sort(prefixes)

	db.Users.Iterate(func(u *User) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(u.Name, prefix) {
				acc[prefix] = append(acc[prefix], u)
			}
		}
		return true
	})

	coll := collate.New(language.Und)
	for _, list := range acc {
		slices.SortFunc(list, func(a, b *User) bool {
			if c := coll.CompareString(a.Name, b.Name); c != 0 {
				return c < 0
			}
			return a.ID < b.ID
		})
	}
	return acc, nil
}

func (q userPrefixQuery) execute(db *Database, stats queryStats, inst *Instance, w QueryWriter) error {
	args := inst.args.(userPrefixArgs)
	list, ok := stats.(userPrefixStats)[args.prefix]
	if !ok {
		return statsMismatch(q, inst)
	}
	for _, u := range list {
		w.BeginObject()
		w.WriteField("name", u.Name)
		w.WriteField("id", u.ID)
	}
	return nil
}
