package fetcher

// captureScript runs inside the rendered page and returns the geometry
// records the logo pipeline scores: brand anchors with their graphics,
// every header vector and raster, and a page-wide SVG census.
//
// The fingerprint formula (first 50 chars of each path's d, joined, capped
// at 200) must stay in sync with the DOM-side recomputation in the logo
// package, or deduplication breaks across tiers.
const captureScript = `() => {
	const origin = location.origin;
	const results = {
		brandAnchors: [],
		headerSvgs: [],
		headerImages: [],
		svgCount: document.querySelectorAll('svg').length
	};

	function isBrandAnchor(a) {
		const href = a.getAttribute('href') || '';
		if (!href) return false;

		const isHomeLink = href === '/' || href === '#' ||
			href === origin || href === origin + '/' ||
			(href.startsWith('/') && !href.slice(1).includes('/') && href.length < 10);

		if (!isHomeLink && href.startsWith('http') && !href.includes(origin)) {
			return false;
		}
		if (!a.closest('header, nav, [role="banner"], .header, .navbar')) return false;

		const text = a.textContent.trim();
		if (text.length > 25) return false;

		const hasGraphics = a.querySelector('svg, img, [class*="logo"], [class*="brand"]');
		if (!hasGraphics && text.length > 0) return false;

		return true;
	}

	function svgGeometry(svg) {
		const rect = svg.getBoundingClientRect();
		const paths = svg.querySelectorAll('path');

		let totalPathLength = 0;
		let pathCommands = 0;
		let fingerprint = '';

		paths.forEach(p => {
			const d = p.getAttribute('d') || '';
			totalPathLength += d.length;
			pathCommands += (d.match(/[MLHVCSQTAZ]/gi) || []).length;
			fingerprint += d.substring(0, 50);
		});

		return {
			width: rect.width,
			height: rect.height,
			x: rect.x,
			y: rect.y,
			area: rect.width * rect.height,
			aspectRatio: rect.width / Math.max(1, rect.height),
			pathCount: paths.length,
			totalPathLength: totalPathLength,
			pathCommands: pathCommands,
			isComplex: totalPathLength > 500 || paths.length > 3,
			isWordmark: rect.width > rect.height * 1.5 && pathCommands > 20,
			fingerprint: fingerprint.substring(0, 200)
		};
	}

	function computedColors(el) {
		try {
			const style = window.getComputedStyle(el);
			return {
				color: style.color,
				fill: style.fill,
				backgroundColor: style.backgroundColor
			};
		} catch (e) {
			return { color: '', fill: '', backgroundColor: '' };
		}
	}

	function svgRecord(svg) {
		const geometry = svgGeometry(svg);
		if (geometry.width < 10 || geometry.height < 10) return null;

		return {
			html: svg.outerHTML,
			geometry: geometry,
			colors: computedColors(svg),
			inHeader: !!svg.closest('header, nav, [role="banner"]'),
			isInLink: !!svg.closest('a')
		};
	}

	function imgRecord(img) {
		const rect = img.getBoundingClientRect();
		if (rect.width < 20 || rect.height < 10) return null;

		const link = img.closest('a');
		return {
			src: img.currentSrc || img.src,
			alt: img.alt || '',
			width: rect.width,
			height: rect.height,
			x: rect.x,
			y: rect.y,
			aspectRatio: rect.width / Math.max(1, rect.height),
			className: typeof img.className === 'string' ? img.className : '',
			inHeader: !!img.closest('header, nav, [role="banner"]'),
			isInLink: !!link,
			linkHref: link ? (link.getAttribute('href') || '') : '',
			isLogoKeyword: /logo|brand|mark/i.test(img.alt + img.className + img.src)
		};
	}

	const anchors = document.querySelectorAll(
		'header a, nav a, [role="banner"] a, a[href="/"], a[href="' + origin + '"]');

	anchors.forEach(a => {
		if (!isBrandAnchor(a)) return;

		const svgs = [];
		const imgs = [];
		a.querySelectorAll('svg').forEach(svg => {
			const rec = svgRecord(svg);
			if (rec) svgs.push(rec);
		});
		a.querySelectorAll('img').forEach(img => {
			const rec = imgRecord(img);
			if (rec) imgs.push(rec);
		});

		if (svgs.length > 0 || imgs.length > 0) {
			results.brandAnchors.push({
				href: a.getAttribute('href'),
				ariaLabel: a.getAttribute('aria-label') || '',
				text: a.textContent.trim().substring(0, 50),
				svgs: svgs,
				imgs: imgs
			});
		}
	});

	document.querySelectorAll('header svg, nav svg, [role="banner"] svg').forEach(svg => {
		const rec = svgRecord(svg);
		if (rec && rec.geometry.area > 100) {
			results.headerSvgs.push(rec);
		}
	});

	document.querySelectorAll('header img, nav img, [role="banner"] img').forEach(img => {
		const rec = imgRecord(img);
		if (rec) {
			results.headerImages.push(rec);
		}
	});

	return results;
}`

// stabilityScript resolves once the DOM has been mutation-free for 800ms.
// Plain load events fire long before client-rendered headers exist.
const stabilityScript = `() => new Promise(resolve => {
	let last = Date.now();
	const obs = new MutationObserver(() => last = Date.now());
	obs.observe(document.body, { childList: true, subtree: true });
	const check = () => {
		if (Date.now() - last > 800) {
			obs.disconnect();
			resolve();
		} else {
			requestAnimationFrame(check);
		}
	};
	setTimeout(check, 100);
})`
