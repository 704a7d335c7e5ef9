// Package formflow mounts an account creation form: field validation on
// change and blur, company based email domain suggestions that never
// overwrite newer input, and a guarded submission that resets the form on
// success.
//
// A Session is the single entry point for a front end:
//
//	forms, _ := schema.Default()
//	spec, _ := forms.Form(schema.FormSignup)
//	session, err := formflow.New(spec,
//		formflow.WithSuggestionClient(client),
//		formflow.WithNotifier(notifier),
//	)
//
// Front ends forward OnFieldChange, OnFieldBlur and OnSubmit, and render
// Fields. The terminal front end lives in pkg/renderers/tui.
package formflow
