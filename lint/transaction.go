package lint

import (
	"errors"
	"regexp"
)

// ErrEditInProgress is returned by Begin when the set already has an open
// Transaction.
var ErrEditInProgress = errors.New("directive set is already being edited")

// ErrTransactionClosed is reported when a Transaction is used after Commit.
var ErrTransactionClosed = errors.New("transaction already committed")

// CommitFunc persists a directive set at the end of a Transaction. It is
// only called when the transaction changed something.
type CommitFunc func(*DirectiveSet) error

// Transaction brackets a batch of edits to a DirectiveSet. Edits are
// applied in place, so severity queries made before Commit may observe a
// partially edited set. Persistence is deferred until Commit.
//
// Mutating methods never return errors; the first failure is kept and
// reported by Commit.
//
// Example:
//
//	tx, err := ds.Begin(save)
//	if err != nil {
//	    return err
//	}
//	tx.SetSeverity("HardcodedText", lint.ERROR)
//	tx.Ignore("UnusedResources", "res/values/strings.xml")
//	return tx.Commit()
type Transaction struct {
	set     *DirectiveSet
	commit  CommitFunc
	changed bool
	closed  bool
	err     error
}

// Begin opens a Transaction on ds. commit may be nil for sets that are not
// backed by storage.
func (ds *DirectiveSet) Begin(commit CommitFunc) (*Transaction, error) {
	if ds.editing {
		return nil, ErrEditInProgress
	}
	ds.editing = true
	return &Transaction{set: ds, commit: commit}, nil
}

func (t *Transaction) edit(fn func(d *Directives)) {
	if t.closed {
		if t.err == nil {
			t.err = ErrTransactionClosed
		}
		return
	}
	fn(&t.set.d)
	t.changed = true
}

// SetSeverity records a persisted severity for an issue id, category name
// or AllIssues.
func (t *Transaction) SetSeverity(key string, sev Severity) {
	if !sev.Valid() {
		t.fail(&invalidSeverityError{key: key, sev: sev})
		return
	}
	t.edit(func(d *Directives) {
		if d.Severities == nil {
			d.Severities = make(map[string]Severity)
		}
		d.Severities[key] = sev
	})
}

// ClearSeverity removes a persisted severity.
func (t *Transaction) ClearSeverity(key string) {
	t.edit(func(d *Directives) { delete(d.Severities, key) })
}

// Override pins the severity of an issue id.
func (t *Transaction) Override(id string, sev Severity) {
	if !sev.Valid() {
		t.fail(&invalidSeverityError{key: id, sev: sev})
		return
	}
	t.edit(func(d *Directives) {
		if d.SeverityOverrides == nil {
			d.SeverityOverrides = make(map[string]Severity)
		}
		d.SeverityOverrides[id] = sev
	})
}

// DisableID disables an issue id.
func (t *Transaction) DisableID(id string) {
	t.edit(func(d *Directives) { d.DisabledIDs = addTo(d.DisabledIDs, id) })
}

// DisableCategory disables a category and its children.
func (t *Transaction) DisableCategory(name string) {
	t.edit(func(d *Directives) { d.DisabledCategories = addTo(d.DisabledCategories, name) })
}

// EnableID enables an issue id.
func (t *Transaction) EnableID(id string) {
	t.edit(func(d *Directives) { d.EnabledIDs = addTo(d.EnabledIDs, id) })
}

// EnableCategory enables a category and its children.
func (t *Transaction) EnableCategory(name string) {
	t.edit(func(d *Directives) { d.EnabledCategories = addTo(d.EnabledCategories, name) })
}

// Ignore suppresses findings of issue id (or AllIssues) under path.
func (t *Transaction) Ignore(id, path string) {
	t.edit(func(d *Directives) {
		if d.IgnorePaths == nil {
			d.IgnorePaths = make(map[string][]string)
		}
		d.IgnorePaths[id] = append(d.IgnorePaths[id], path)
	})
}

// IgnorePattern suppresses findings of issue id whose message or path
// matches pattern.
func (t *Transaction) IgnorePattern(id, pattern string) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.fail(err)
		return
	}
	t.edit(func(d *Directives) {
		if d.IgnorePatterns == nil {
			d.IgnorePatterns = make(map[string][]string)
		}
		d.IgnorePatterns[id] = append(d.IgnorePatterns[id], pattern)
		t.set.patterns[id] = append(t.set.patterns[id], re)
	})
}

// SetOption sets an option value for issue id.
func (t *Transaction) SetOption(id, name, value string) {
	t.edit(func(d *Directives) {
		if d.Options == nil {
			d.Options = make(map[string]map[string]string)
		}
		if d.Options[id] == nil {
			d.Options[id] = make(map[string]string)
		}
		d.Options[id][name] = value
	})
}

// SetBaseline records the baseline file of the scope.
func (t *Transaction) SetBaseline(path string) {
	t.edit(func(d *Directives) { d.Baseline = path })
}

// SetFlags replaces the scope-wide flags.
func (t *Transaction) SetFlags(flags Flags) {
	t.edit(func(d *Directives) { d.Flags = flags })
}

// Changed reports whether any edit was applied.
func (t *Transaction) Changed() bool {
	return t.changed
}

// Commit closes the transaction and persists the set if anything changed.
// Commit is idempotent: calls after the first return nil and do nothing.
// The transaction is closed even when persisting fails.
func (t *Transaction) Commit() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.set.editing = false
	if t.err != nil {
		return t.err
	}
	if !t.changed || t.commit == nil {
		return nil
	}
	return t.commit(t.set)
}

func (t *Transaction) fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

func addTo(s Set, item string) Set {
	if s == nil {
		s = NewSet()
	}
	s[item] = struct{}{}
	return s
}

type invalidSeverityError struct {
	key string
	sev Severity
}

func (e *invalidSeverityError) Error() string {
	return "invalid severity " + e.sev.String() + " for " + e.key
}
