package runtime

var preludeSources = []string{
	`
fun map(arr, fn) {
	let out = [];
	for (let i = 0; i < len(arr); i++) push(out, fn(arr[i]));
	return out;
}
`,
	`
fun filter(arr, pred) {
	let out = [];
	for (let i = 0; i < len(arr); i++) {
		if (pred(arr[i])) push(out, arr[i]);
	}
	return out;
}
`,
	`
fun reduce(arr, fn, init) {
	let acc = init;
	for (let i = 0; i < len(arr); i++) acc = fn(acc, arr[i]);
	return acc;
}
`,
}
