package chat

// Consume drains one turn's fragment and error channels, accumulating the
// fragments in arrival order. After every fragment onProgress receives the
// whole text accumulated so far, not the delta; the UI contract is
// full-so-far content at every update. It returns the final accumulated
// string, or the first error the stream produced.
//
// The accumulated text is returned even on error so the caller can decide
// what to discard; this function never commits anything itself.
func Consume(frags <-chan string, errs <-chan error, onProgress func(accumulated string)) (string, error) {
	var acc []byte
	var streamErr error
	openFrags, openErrs := frags != nil, errs != nil
	for openFrags || openErrs {
		select {
		case f, ok := <-frags:
			if !ok {
				openFrags = false
				frags = nil
				continue
			}
			acc = append(acc, f...)
			if onProgress != nil {
				onProgress(string(acc))
			}
		case e, ok := <-errs:
			if !ok {
				openErrs = false
				errs = nil
				continue
			}
			if e != nil && streamErr == nil {
				streamErr = e
			}
		}
	}
	return string(acc), streamErr
}
