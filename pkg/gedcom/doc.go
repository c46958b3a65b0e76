// Package gedcom reads and writes family trees in GEDCOM 5.5.1.
//
// # Overview
//
// GEDCOM is a line-oriented format. Every line is
//
//	<level> [@xref@] <tag> [value]
//
// Level 0 lines start records (HEAD, INDI, FAM, TRLR); deeper levels attach
// sub-structures to the nearest shallower line.
//
// # Encoding
//
// [Encode] turns a [family.Tree] into GEDCOM text. Individuals are written
// as INDI records with cross-reference @I<id>@. Families are not stored in
// the tree, so the encoder infers them:
//
//   - A person with a known father or mother is a child of the family keyed
//     by both parents. With a single known parent the missing side is the
//     sentinel U, as in @F_7_U@.
//   - Every spouse link creates a family keyed by the sorted spouse pair,
//     so the key is the same from either spouse's record.
//   - A two-parent family is keyed by the sorted parent pair as well, which
//     makes a married couple and the parents of their children one record.
//
// Husband and wife come from the children's FatherID and MotherID when
// known. Childless couples are assigned by gender (Male husband, Female
// wife) and, when genders do not decide, the lexically smaller ID becomes
// husband. This is a determinism rule only: encoding the same tree always
// yields the same bytes.
//
// Co-parents that are not spouse-linked get a "1 _UNMARRIED Y" extension
// line on their FAM record so that decoding does not invent a marriage.
//
// Dates in YYYY-MM-DD form are written as "D MON YYYY"; anything else is
// written verbatim. References to people missing from the tree are dropped
// and listed in the [Report] returned by [EncodeReport].
//
// # Decoding
//
// [Decode] parses INDI and FAM records back into a tree. INDI @I<id>@
// becomes person <id>. Each FAM sets FatherID and MotherID on its children
// (and ChildrenIDs on the parents) and links husband and wife as spouses.
// A FAM pointing at an undefined INDI is rejected with [ErrUndefinedXRef];
// [DecodeLenient] skips such records and reports them instead.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use.
package gedcom
