// Package io provides JSON import and export for family trees.
//
// # Overview
//
// GEDCOM (see package gedcom) is the interchange format for other genealogy
// software. This package covers the native format: a lossless JSON snapshot
// of a [family.Tree] that keeps every field, including biographies and
// embedded photos that GEDCOM export drops.
//
// # JSON Format
//
//	{
//	  "rootId": "1",
//	  "people": [
//	    {
//	      "id": "1",
//	      "firstName": "Arthur",
//	      "lastName": "Pendragon",
//	      "gender": "Male",
//	      "spouseIds": ["2"],
//	      "childrenIds": ["3"]
//	    }
//	  ]
//	}
//
// People are written sorted by ID so exports of the same tree are
// byte-identical. On import, missing relationship lists become empty lists
// and a missing rootId falls back to the default root.
//
// [family.Tree]: github.com/matzehuels/lineage/pkg/family.Tree
package io
