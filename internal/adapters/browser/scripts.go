package browser

// DOM hooks of the LinkedIn messaging page
const (
	listSelector       = ".msg-conversations-container__conversations-list"
	itemSelector       = "li.msg-conversation-listitem"
	cardSelector       = ".msg-conversation-card"
	senderSelector     = ".msg-conversation-card__participant-names, .msg-conversation-listitem__participant-names"
	previewSelector    = ".msg-conversation-card__message-snippet"
	timestampSelector  = ".msg-conversation-card__timestamp"
	controlID          = "linkedin-prioritizer-container"
	messageBoxSelector = ".msg-form__contenteditable"
	sendButtonSelector = ".msg-form__send-button"
)

// itemsScript tags each list child with a stable ref and returns it with its card text.
// Returns null when the list is not on the page.
const itemsScript = `(list, item, control, sender, preview) => {
	const root = document.querySelector(list);
	if (!root) return null;
	window.__lpSeq = window.__lpSeq || 0;
	const text = (el, sel) => ((el.querySelector(sel) || {}).textContent || '').trim();
	const out = [];
	for (const el of root.children) {
		if (el.id === control) {
			out.push({ ref: control, control: true });
			continue;
		}
		if (!el.matches(item)) continue;
		if (!el.dataset.lpRef) el.dataset.lpRef = String(++window.__lpSeq);
		out.push({ ref: el.dataset.lpRef, sender: text(el, sender), preview: text(el, preview) });
	}
	return out;
}`

// reorderScript moves the list children into refs order with one DOM insertion.
// The control element goes first; children not named in refs keep their place after.
const reorderScript = `(list, control, refs) => {
	const root = document.querySelector(list);
	if (!root) return false;
	const byRef = new Map();
	for (const el of root.children) {
		if (el.dataset && el.dataset.lpRef) byRef.set(el.dataset.lpRef, el);
	}
	const frag = document.createDocumentFragment();
	const head = document.getElementById(control);
	if (head && head.parentElement === root) frag.appendChild(head);
	for (const ref of refs) {
		const el = byRef.get(ref);
		if (el) frag.appendChild(el);
	}
	root.insertBefore(frag, root.firstChild);
	if (window.__lpObserver) window.__lpObserver.takeRecords();
	return true;
}`

const scrapeScript = `(card, sender, preview, timestamp) => {
	const text = (el, sel) => ((el.querySelector(sel) || {}).textContent || '').trim();
	return Array.from(document.querySelectorAll(card)).map(el => {
		const anchor = el.closest('a[href]') || el.querySelector('a[href]');
		return {
			sender: text(el, sender),
			preview: text(el, preview),
			timestamp: text(el, timestamp),
			link: el.getAttribute('href') || (anchor ? anchor.getAttribute('href') : '') || '',
		};
	});
}`

// markScript underlines the sender of every card flagged high, clearing the rest
const markScript = `(card, sender, flags) => {
	const cards = document.querySelectorAll(card);
	cards.forEach((el, i) => {
		const name = el.querySelector(sender);
		if (!name) return;
		if (flags[i]) {
			name.style.textDecoration = 'underline';
			name.style.textDecorationColor = '#FF5252';
			name.style.textDecorationThickness = '2px';
			name.setAttribute('title', 'High Priority');
		} else {
			name.style.textDecoration = '';
			name.removeAttribute('title');
		}
	});
	return cards.length;
}`

// observeScript installs the mutation counter once per document. It counts structural
// and text changes; the reorder drains its own records.
const observeScript = `() => {
	if (window.__lpObserver) return true;
	window.__lpMutations = 0;
	window.__lpObserver = new MutationObserver(records => { window.__lpMutations += records.length; });
	window.__lpObserver.observe(document.body, { childList: true, characterData: true, subtree: true });
	return true;
}`

// pollScript returns and resets the mutation counter
const pollScript = `() => {
	const n = window.__lpMutations || 0;
	window.__lpMutations = 0;
	return { mutations: n, url: location.href, installed: !!window.__lpObserver };
}`
